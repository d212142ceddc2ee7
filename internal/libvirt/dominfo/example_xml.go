/*
SPDX-FileCopyrightText: Copyright 2025 the virtstack contributors
SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package dominfo

// exampleXML is a trimmed `virsh dumpxml` capture used by the
// emulated client and the schema tests.
var exampleXML = []byte(`<domain type='kvm' id='42'>
  <name>instance-00000042</name>
  <uuid>6695eb01-f6a4-8304-79aa-97f2502e193f</uuid>
  <memory unit='KiB'>4194304</memory>
  <currentMemory unit='KiB'>4194304</currentMemory>
  <vcpu placement='static'>2</vcpu>
  <os>
    <type arch='x86_64'>hvm</type>
    <boot dev='hd'/>
  </os>
  <clock offset='utc'/>
  <on_poweroff>destroy</on_poweroff>
  <on_reboot>restart</on_reboot>
  <on_crash>destroy</on_crash>
  <devices>
    <emulator>/usr/bin/qemu-system-x86_64</emulator>
    <disk type='file' device='disk'>
      <driver type='qcow2' cache='none' discard='unmap'/>
      <source file='/var/lib/libvirt/images/instance-00000042.qcow2'/>
      <target dev='vda' bus='virtio'/>
      <alias name='virtio-disk0'/>
    </disk>
    <disk type='file' device='cdrom'>
      <driver type='raw'/>
      <source file='/var/lib/libvirt/images/config-drive.iso'/>
      <target dev='hdc' bus='ide'/>
      <alias name='ide0-1-0'/>
    </disk>
    <interface type='bridge'>
      <mac address='52:54:00:8c:34:1e'/>
      <source bridge='br-int'/>
      <target dev='tap42'/>
      <model type='virtio'/>
      <alias name='net0'/>
    </interface>
    <graphics type='spice' port='5901' autoport='yes' listen='0.0.0.0'/>
  </devices>
</domain>
`)
